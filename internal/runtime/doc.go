// Package runtime implements the slot-filling state machine: one pure transition per user
// utterance over the modes CollectingMain, CollectingSub, ConfirmingMain, NotConfirmed,
// SuccessMain and Completed.
package runtime

/*
Package extract turns raw utterances into field values.

Two extractors cooperate on every turn:

  - Mixed scans the utterance for values of any kind still pending in the plan, fills the
    matching fields and removes the consumed spans, so one sentence can fill several fields.
  - Composite splits the residual text into the canonical components of the kind being asked
    (day/month/year, first/last, street/number/city/postal/country).

Both are pure with respect to their inputs: memories are copied, never mutated.
*/
package extract

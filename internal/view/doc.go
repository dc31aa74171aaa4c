/*
Package view turns fetched dashboard records into render-ready fragments.

Rendering is split in two steps so each step stays pure and testable
without a live document:

  - View-models (EmailRow, KeyRow, MetricFields) resolve every display rule:
    badge classes, "Unknown" key names, "Just now" creation dates,
    "Never used" keys and the percent suffix on the success rate.
  - Fragment renderers turn view-models into HTML for the fixed dashboard
    element ids. The terminal dashboard draws the same view-models with
    lipgloss instead.

Every renderer fully replaces the region it targets and is deterministic:
rendering the same input twice yields byte-identical output.
*/
package view

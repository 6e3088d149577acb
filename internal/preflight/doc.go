// Package preflight provides readiness checks for the scripting bridge and
// filesystem layout that Shapes depends on.
//
// These checks run in two contexts:
//   - The CLI "shapes doctor" command calls RunAll and renders one row per
//     check so a broken setup is diagnosed before the first capture fails.
//   - Individual check functions serve callers that care about a single
//     subsystem, like the capture flow probing host availability.
//
// Checks gated by a config toggle are skipped when the feature is off.
package preflight

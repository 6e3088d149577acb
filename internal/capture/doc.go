// Package capture defines the raw shape payload host automation reports and
// the normalizer that turns it into canonical shape records.
//
// Normalization is deliberately permissive: the automation surface is
// externally controlled and loosely typed, so absent or garbage fields fall
// back to sane defaults instead of failing the capture.
package capture

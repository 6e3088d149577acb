// Package assets keeps a record's preview image and native artifact
// physically consistent with the record itself.
//
// The invariant it guards: a persisted record's preview path always sits
// under the record's own category directory. Category changes move the
// preview file before the record rewrite lands, and the orphan repair pass
// recovers the invariant when a crash or external edit broke it.
package assets

// Package housekeeping implements the periodic maintenance passes that keep
// the tag catalog consistent with the records that reference it.
//
// The central housekeeper is UnusedTagsCleaner. On every pass it reads the
// IDs of all catalog tags, asks every registered TagReferenceSource which tag
// IDs its records reference, and deletes the difference in one bulk call:
//
//	Unused = All - (source_1 ∪ source_2 ∪ ... ∪ source_n)
//
// Sources are queried concurrently. Any failure aborts the pass before the
// delete, so a tag is never removed on the strength of a partial reference
// set. New consumers of tags are added by implementing TagReferenceSource and
// registering it; the cleaner's algorithm does not change.
//
// The scan and the delete are not atomic with respect to writers: a record
// that starts referencing a tag after its source was read, but before the
// delete runs, may lose that tag. The next pass cannot resurrect it. Writers
// that attach tags are expected to tolerate a missing tag.
//
// Runner executes a list of housekeepers in order, records every execution as
// a models.HousekeepingRun, and keeps going when one of them fails. Scheduler
// drives a Runner on a fixed interval.
package housekeeping

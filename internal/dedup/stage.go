package dedup

// Stage pairs an identity key with a survivor policy. Stages run in the
// order they are declared and each one sees the table as left by the
// previous one.
type Stage struct {
	Name             string
	Key              IdentityKey
	Selector         Selector
	ArchivePrefilter bool
	ReportFile       string
}

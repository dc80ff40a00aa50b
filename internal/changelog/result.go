package changelog

// UnreleasedName names the record built from the Unreleased section.
const UnreleasedName = "Unreleased"

// DateKey is the metadata key that carries a release date.
const DateKey = "Date"

// Record is a named key/value record as consumed by a build pipeline.
type Record struct {
	Name     string            `json:"name" yaml:"name" toml:"name"`
	Metadata map[string]string `json:"metadata" yaml:"metadata" toml:"metadata"`
}

// Options controls Evaluate.
type Options struct {
	// Duplicates decides how repeated category labels are mapped.
	Duplicates DuplicatePolicy
	// RequireRelease turns "no valid release" into a NoReleasesError.
	RequireRelease bool
}

// Result holds every output of one evaluation.
//
// CurrentRelease is nil and LatestReleaseNotes is empty when no release
// section survived extraction; Skipped explains what was dropped.
type Result struct {
	Unreleased         *Record
	CurrentRelease     *Record
	AllReleases        []Record
	LatestReleaseNotes string
	Skipped            []Skipped

	// Releases are the validated releases backing AllReleases, same order.
	Releases []Release
	// UnreleasedSection is the section backing Unreleased.
	UnreleasedSection *Section
}

// Evaluate parses text and produces all outputs. It fails with a ParseError
// for malformed documents and, when opts.RequireRelease is set, with a
// NoReleasesError if no release survived extraction.
func Evaluate(text string, opts Options) (*Result, error) {
	doc, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return EvaluateDocument(doc, opts)
}

// EvaluateDocument produces all outputs for an already parsed document.
func EvaluateDocument(doc *Document, opts Options) (*Result, error) {
	ex := Extract(doc)
	ordered := Order(ex.Releases)

	if len(ordered) == 0 && opts.RequireRelease {
		return nil, &NoReleasesError{Skipped: ex.Skipped}
	}

	res := &Result{
		AllReleases: make([]Record, 0, len(ordered)),
		Skipped:     ex.Skipped,
		Releases:    ordered,
	}

	if doc.Unreleased != nil {
		rec := UnreleasedRecord(*doc.Unreleased, opts.Duplicates)
		res.Unreleased = &rec
		res.UnreleasedSection = doc.Unreleased
	}

	for _, rel := range ordered {
		res.AllReleases = append(res.AllReleases, ReleaseRecord(rel, opts.Duplicates))
	}

	if len(ordered) > 0 {
		current := res.AllReleases[0]
		res.CurrentRelease = &current
		res.LatestReleaseNotes = Markdown(ordered[0].Subsections)
	}

	return res, nil
}

// ReleaseRecord renders a release as a record named by its version, with
// the release date added under DateKey.
func ReleaseRecord(rel Release, policy DuplicatePolicy) Record {
	metadata := Metadata(rel.Subsections, policy)
	metadata[DateKey] = rel.Date.String()
	return Record{Name: rel.Version.String(), Metadata: metadata}
}

// UnreleasedRecord renders the Unreleased section as a record.
func UnreleasedRecord(sec Section, policy DuplicatePolicy) Record {
	return Record{Name: UnreleasedName, Metadata: Metadata(sec.Subsections, policy)}
}

// ReleaseCount returns the number of validated releases.
func (r *Result) ReleaseCount() int {
	return len(r.Releases)
}

// HasUnreleased returns true if the changelog had an Unreleased section.
func (r *Result) HasUnreleased() bool {
	return r.Unreleased != nil
}

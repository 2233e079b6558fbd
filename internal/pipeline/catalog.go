package pipeline

// Dataset describes a satellite catalog entry: the bands a video export
// takes by default and how to read its quality band.
type Dataset struct {
	ID     string
	Bands  []string
	QABand string

	// Cloud flag bit range in the QA band, [CloudBitStart, CloudBitEnd).
	CloudBitStart int
	CloudBitEnd   int
}

// HasCloudMask reports whether the dataset carries a QA band the pipeline
// knows how to mask with.
func (d Dataset) HasCloudMask() bool { return d.QABand != "" }

// MOD09A1 is the 8-day 500 m surface reflectance composite the exporter was
// built around. Bits 8-12 of StateQA hold the internal cloud algorithm flag.
var MOD09A1 = Dataset{
	ID: "MODIS/061/MOD09A1",
	Bands: []string{
		"sur_refl_b01",
		"sur_refl_b02",
		"sur_refl_b03",
		"sur_refl_b04",
		"sur_refl_b05",
		"sur_refl_b06",
		"sur_refl_b07",
	},
	QABand:        "StateQA",
	CloudBitStart: 8,
	CloudBitEnd:   13,
}

var datasets = map[string]Dataset{
	MOD09A1.ID: MOD09A1,
}

// LookupDataset returns the catalog entry for id. Unknown ids still export,
// but with no cloud mask and no default band list.
func LookupDataset(id string) Dataset {
	if d, ok := datasets[id]; ok {
		return d
	}
	return Dataset{ID: id}
}

package dataset

// Version information for the dataset module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)

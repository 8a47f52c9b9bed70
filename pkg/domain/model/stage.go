package model

// Stage is a step of the provisioning pipeline
type Stage string

const (
	StageIdle          Stage = "idle"
	StageFetching      Stage = "fetching"
	StageDecompressing Stage = "decompressing"
	StageExtracting    Stage = "extracting"
	StageDone          Stage = "done"
)

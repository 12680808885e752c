// Package domain contains the core types and error taxonomy of insightd.
package domain

// Stage is a single aggregation stage. Its structure is opaque to insightd;
// the semantics belong to the MongoDB aggregation language.
type Stage = map[string]any

// Record is one document produced by an aggregation run.
type Record = map[string]any

// Pipeline is a stored, named aggregation pipeline definition. Definitions
// are created and edited out of band; insightd only reads them. The name
// uniquely identifies a definition — on duplicates the first match wins.
type Pipeline struct {
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description"`
	Stages      []Stage `bson:"pipeline" json:"pipeline"`
}

// Insight is the assembled result of one pipeline run: the aggregated data
// plus the model-generated commentary.
type Insight struct {
	Title       string
	Description string
	Data        []Record
	Summary     string
}

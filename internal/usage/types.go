// Package usage loads API consumption data collected from published packages.
package usage

// Metadata keys read from an Application.
const (
	MetadataName = "Name"
	MetadataPath = "Path"
)

// Application is a consuming package observed during usage collection.
// Two applications are the same package when their metadata is equal.
type Application struct {
	Metadata map[string]string `json:"metadata"`
}

// Name returns the package name, or "" when the metadata has no Name.
func (a Application) Name() string {
	return a.Metadata[MetadataName]
}

// Path returns the package path, or "" when the metadata has no Path.
func (a Application) Path() string {
	return a.Metadata[MetadataPath]
}

// Assembly is a consuming assembly and the applications that ship it.
type Assembly struct {
	Name         string        `json:"name"`
	Applications []Application `json:"applications"`
}

// DataPoint is one observation of an API being referenced by an assembly.
type DataPoint struct {
	AssemblyIndex int   `json:"assemblyIndex"`
	Count         int64 `json:"count"`
}

// DataSeries groups the data points collected for one time bucket.
type DataSeries struct {
	Bucket string      `json:"bucket"`
	Points []DataPoint `json:"points"`
}

// Usage is the usage record of a single API, keyed by its document id.
type Usage struct {
	ID         string       `json:"id"`
	DataSeries []DataSeries `json:"dataSeries"`
}

// PointCount returns the number of data points across all series.
func (u *Usage) PointCount() int {
	n := 0
	for _, ds := range u.DataSeries {
		n += len(ds.Points)
	}
	return n
}

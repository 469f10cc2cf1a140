package domain

// Route is a named corridor between two cities, e.g. "Mumbai-Pune".
type Route struct {
	Name          string `json:"name" yaml:"name"`
	Distance      string `json:"distance" yaml:"distance"`
	EstimatedTime string `json:"estimated_time" yaml:"estimated_time"`
}

package domain

// Municipality is immutable reference data and the unit of tenant isolation.
type Municipality struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province"`
}

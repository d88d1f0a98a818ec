package models

// Restaurant is a single entry of the restaurant dataset.
type Restaurant struct {
	ID       int          // ID is the 1-based position in a file dataset or the primary key in postgres.
	Name     string       // Name is the display name of the restaurant.
	Address  string       // Address is the street address used for geocoding.
	Location *Coordinates // Location is the resolved position, nil until located.
	Supplied *Coordinates // Supplied holds coordinates shipped with the dataset, if any.
}

// Located reports whether the restaurant has a resolved position.
func (r Restaurant) Located() bool {
	return r.Location != nil
}

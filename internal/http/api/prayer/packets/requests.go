package packets

// SetLocationRequest pins the location prayer times are computed for.
type SetLocationRequest struct {
	City      string  `json:"city" binding:"required"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

package bike

import "time"

type Bike struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	WheelCircumferenceM float64   `json:"wheel_circumference_m"`
	OwnerID             string    `json:"owner_id"`
	CreatedAt           time.Time `json:"created_at"`
}

// File: /models/types.go
package models

// Difficulty grades how demanding a route is to ride.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
	DifficultyExpert   Difficulty = "expert"
)

// LocationType classifies a point of interest.
type LocationType string

const (
	LocationGasStation LocationType = "gas_station"
	LocationRestaurant LocationType = "restaurant"
	LocationViewpoint  LocationType = "viewpoint"
	LocationHotel      LocationType = "hotel"
	LocationRestArea   LocationType = "rest_area"
	LocationAttraction LocationType = "attraction"
	LocationParking    LocationType = "parking"
	LocationOther      LocationType = "other"
)

// MotorcycleType is the kind of bike a rider owns.
type MotorcycleType string

const (
	MotorcycleSport     MotorcycleType = "sport"
	MotorcycleCruiser   MotorcycleType = "cruiser"
	MotorcycleTouring   MotorcycleType = "touring"
	MotorcycleAdventure MotorcycleType = "adventure"
	MotorcycleNaked     MotorcycleType = "naked"
	MotorcycleDualSport MotorcycleType = "dual_sport"
	MotorcycleScooter   MotorcycleType = "scooter"
	MotorcycleCafeRacer MotorcycleType = "cafe_racer"
	MotorcycleScrambler MotorcycleType = "scrambler"
	MotorcycleOther     MotorcycleType = "other"
)

// Identity is the authenticated caller of a request. The zero value is anonymous.
type Identity struct {
	UserID   uint
	Username string
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0
}

// Owns reports whether the identity is the given owner id.
func (i Identity) Owns(ownerID uint) bool {
	return i.IsAuthenticated() && i.UserID == ownerID
}

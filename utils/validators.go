// File: /utils/validators.go
package utils

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"motoroutes-api/models"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var motorcycleTypes = map[models.MotorcycleType]bool{
	models.MotorcycleSport:     true,
	models.MotorcycleCruiser:   true,
	models.MotorcycleTouring:   true,
	models.MotorcycleAdventure: true,
	models.MotorcycleNaked:     true,
	models.MotorcycleDualSport: true,
	models.MotorcycleScooter:   true,
	models.MotorcycleCafeRacer: true,
	models.MotorcycleScrambler: true,
	models.MotorcycleOther:     true,
}

// NewValidator returns a validator that reports fields by their json names
// and knows the username and motorcycle_type rules.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	// Blank is allowed; anything else must be a known type.
	_ = v.RegisterValidation("motorcycle_type", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || motorcycleTypes[models.MotorcycleType(value)]
	})

	return v
}

func IsValidDifficulty(d models.Difficulty) bool {
	switch d {
	case models.DifficultyEasy, models.DifficultyModerate, models.DifficultyHard, models.DifficultyExpert:
		return true
	}
	return false
}

func IsValidLocationType(t models.LocationType) bool {
	switch t {
	case models.LocationGasStation, models.LocationRestaurant, models.LocationViewpoint, models.LocationHotel,
		models.LocationRestArea, models.LocationAttraction, models.LocationParking, models.LocationOther:
		return true
	}
	return false
}

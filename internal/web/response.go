package web

import (
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/ranking"
	"github.com/UnknownOlympus/hestia/internal/service"
)

type point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type restaurantView struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Location      *point   `json:"location"`
	DistanceMiles *float64 `json:"distance_miles"`
}

type rankResponse struct {
	Address     string           `json:"address"`
	Origin      *point           `json:"origin"`
	Restaurants []restaurantView `json:"restaurants"`
}

func newPoint(coords *models.Coordinates) *point {
	if coords == nil {
		return nil
	}

	return &point{Latitude: coords.Latitude, Longitude: coords.Longitude}
}

func newRestaurantView(result ranking.Result) restaurantView {
	view := restaurantView{
		ID:       result.Restaurant.ID,
		Name:     result.Restaurant.Name,
		Address:  result.Restaurant.Address,
		Location: newPoint(result.Restaurant.Location),
	}
	if result.Distance.Known {
		miles := result.Distance.Miles
		view.DistanceMiles = &miles
	}

	return view
}

func newRankResponse(outcome service.Outcome) rankResponse {
	restaurants := make([]restaurantView, 0, len(outcome.Results))
	for _, result := range outcome.Results {
		restaurants = append(restaurants, newRestaurantView(result))
	}

	return rankResponse{
		Address:     outcome.Address,
		Origin:      newPoint(outcome.Origin),
		Restaurants: restaurants,
	}
}

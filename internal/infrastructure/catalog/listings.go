package catalog

import "github.com/go-rentals-api/internal/domain"

// defaultListings mirrors the production catalog. Prices are per night in EUR,
// distance is km from the city centre.
var defaultListings = []domain.Listing{
	{ID: 1, Name: "Apartma Pohorje", Location: "Maribor", Price: 75, Rating: 4.6, Distance: 2.1},
	{ID: 2, Name: "Vila Morska zvezda", Location: "Piran", Price: 150, Rating: 4.9, Distance: 0.4},
	{ID: 3, Name: "Studio Center", Location: "Ljubljana", Price: 95, Rating: 4.3, Distance: 0.8},
	{ID: 4, Name: "Apartma Tivoli", Location: "Ljubljana", Price: 120, Rating: 4.7, Distance: 1.5},
	{ID: 5, Name: "Hiška ob Dravi", Location: "Maribor", Price: 60, Rating: 4.1, Distance: 3.2},
	{ID: 6, Name: "Penthouse Tartini", Location: "Piran", Price: 210, Rating: 5.0, Distance: 0.2},
	{ID: 7, Name: "Apartma Bled Lake", Location: "Bled", Price: 135, Rating: 4.8, Distance: 1.0},
	{ID: 8, Name: "Soba Stara Trta", Location: "Maribor", Price: 45, Rating: 3.9, Distance: 1.7},
	{ID: 9, Name: "Loft Metelkova", Location: "Ljubljana", Price: 85, Rating: 4.0, Distance: 1.2},
	{ID: 10, Name: "Apartma Soline", Location: "Portorož", Price: 175, Rating: 4.5, Distance: 2.8},
}

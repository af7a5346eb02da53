// Package value computes the alcohol-per-dollar ranking key.
package value

// Score returns ounces of alcohol per currency unit.
// Unknown inputs or a zero price score 0.
func Score(volumeOz, abv, price *float64) float64 {
	if volumeOz == nil || abv == nil || price == nil || *price == 0 {
		return 0
	}
	return AlcoholOunces(*volumeOz, *abv) / *price
}

// AlcoholOunces is the pure alcohol content of a pour.
func AlcoholOunces(volumeOz, abv float64) float64 {
	return volumeOz * (abv / 100)
}

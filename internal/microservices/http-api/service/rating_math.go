package service

import "djrating/internal/microservices/http-api/models"

// ComputeAggregate derives a DJ's rating fields from its approved reviews.
// Means are rounded half-up to two decimals and the percentage half-up to an
// integer, both on integer arithmetic so the result never depends on float error.
func ComputeAggregate(scores []models.ReviewScores) models.DJAggregate {
	n := len(scores)
	if n == 0 {
		return models.DJAggregate{}
	}

	var overall, set, performance, personality, chooseAgain int
	for _, s := range scores {
		overall += s.OverallRating
		set += s.SetRating
		performance += s.PerformanceRating
		personality += s.PersonalityRating
		if s.WouldChooseAgain {
			chooseAgain++
		}
	}

	return models.DJAggregate{
		OverallRating:           meanTwoDecimals(overall, n),
		SetRating:               meanTwoDecimals(set, n),
		PerformanceRating:       meanTwoDecimals(performance, n),
		PersonalityRating:       meanTwoDecimals(personality, n),
		ReviewCount:             n,
		WouldChooseAgainPercent: roundHalfUp(100*chooseAgain, n),
	}
}

func meanTwoDecimals(sum, n int) float64 {
	return float64(roundHalfUp(100*sum, n)) / 100
}

// roundHalfUp returns num/den rounded to the nearest integer, ties away from zero.
// Both arguments are non-negative here.
func roundHalfUp(num, den int) int {
	return (2*num + den) / (2 * den)
}

// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package model defines the core data structures of the movie dashboard. This
// file, `gauge.go`, computes the values behind the two dial widgets on a movie
// card: the average rating gauge and the vote count gauge.
package model

// Gauge bands, from worst to best.
const (
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"
)

// Rating gauge scale and band thresholds.
const (
	RatingScaleMax    = 10.0
	ratingMediumFloor = 3.0
	ratingHighFloor   = 7.0
)

// DefaultMaxVotes caps the vote gauge when no other maximum is configured.
const DefaultMaxVotes int64 = 3_000_000

// RatingGauge is the data behind the average-rating dial.
type RatingGauge struct {
	Value float64 `json:"value"` // Rating clamped to [0, 10].
	Max   float64 `json:"max"`   // Always RatingScaleMax.
	Band  string  `json:"band"`  // BandLow, BandMedium or BandHigh.
}

// NewRatingGauge returns the gauge for rating, or nil when the rating is unknown.
func NewRatingGauge(rating *float64) *RatingGauge {
	if rating == nil {
		return nil
	}
	v := clampFloat(*rating, 0, RatingScaleMax)
	band := BandLow
	switch {
	case v >= ratingHighFloor:
		band = BandHigh
	case v >= ratingMediumFloor:
		band = BandMedium
	}
	return &RatingGauge{Value: v, Max: RatingScaleMax, Band: band}
}

// VoteGauge is the data behind the vote-count dial.
type VoteGauge struct {
	Value    int64   `json:"value"`    // Vote count clamped to [0, Max].
	Max      int64   `json:"max"`      // Upper end of the dial.
	Fraction float64 `json:"fraction"` // Value / Max.
	Band     string  `json:"band"`     // Thirds of the dial: low, medium, high.
}

// NewVoteGauge returns the gauge for count on a dial ending at maxVotes, or nil
// when the count is unknown. A non-positive maxVotes falls back to DefaultMaxVotes.
func NewVoteGauge(count *int64, maxVotes int64) *VoteGauge {
	if count == nil {
		return nil
	}
	if maxVotes <= 0 {
		maxVotes = DefaultMaxVotes
	}
	v := *count
	if v < 0 {
		v = 0
	} else if v > maxVotes {
		v = maxVotes
	}
	fraction := float64(v) / float64(maxVotes)
	band := BandLow
	switch {
	case fraction >= 0.66:
		band = BandHigh
	case fraction >= 0.33:
		band = BandMedium
	}
	return &VoteGauge{Value: v, Max: maxVotes, Fraction: fraction, Band: band}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

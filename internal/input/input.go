package input

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/D3fc0n3-1/Deal-hunter/internal/platform"
	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"
)

// rawRequest uses pointer fields so missing keys are distinguishable from
// zero values.
type rawRequest struct {
	Name            *string  `json:"name"`
	MaxPrice        *float64 `json:"max_price"`
	MinSellerRating *float64 `json:"min_seller_rating"`
}

// Load reads the input file and returns the validated search requests in
// file order. Any malformed entry fails the whole load: the orchestrator
// never proceeds with a partially valid input set.
func Load(path string) ([]platform.SearchRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.NewValidation(fmt.Sprintf("cannot read input file %s: %v", path, err))
	}

	var raw []rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperr.NewValidation(fmt.Sprintf("input file %s is not a JSON list of items: %v", path, err))
	}

	requests := make([]platform.SearchRequest, 0, len(raw))
	for i, entry := range raw {
		req, err := validate(i, entry)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func validate(index int, entry rawRequest) (platform.SearchRequest, error) {
	if entry.Name == nil || *entry.Name == "" {
		return platform.SearchRequest{}, apperr.NewValidation(
			fmt.Sprintf("entry %d: missing or empty \"name\"", index))
	}
	if entry.MaxPrice == nil {
		return platform.SearchRequest{}, apperr.NewValidation(
			fmt.Sprintf("entry %d (%s): missing \"max_price\"", index, *entry.Name))
	}
	if *entry.MaxPrice < 0 {
		return platform.SearchRequest{}, apperr.NewValidation(
			fmt.Sprintf("entry %d (%s): \"max_price\" must not be negative", index, *entry.Name))
	}

	rating := 0.0
	if entry.MinSellerRating != nil {
		rating = *entry.MinSellerRating
		if rating < 0 || rating > 100 {
			return platform.SearchRequest{}, apperr.NewValidation(
				fmt.Sprintf("entry %d (%s): \"min_seller_rating\" must be within 0-100", index, *entry.Name))
		}
	}

	return platform.SearchRequest{
		Name:            *entry.Name,
		MaxPrice:        *entry.MaxPrice,
		MinSellerRating: rating,
	}, nil
}

package crawler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mdolezal/sreality-alert/pkg/model"
	"github.com/mdolezal/sreality-alert/pkg/sreality"
	"github.com/mdolezal/sreality-alert/pkg/storage"
)

// defaultPriceUnit is used when the upstream record carries no unit label.
const defaultPriceUnit = "za měsíc"

// Fetcher is the upstream listing source.
type Fetcher interface {
	FetchEstates(ctx context.Context, page int) ([]sreality.Estate, error)
}

// Crawler runs the fetch-filter-store sequence against a single storage
// handle. It holds no mutable state of its own and is safe for concurrent
// RunOnce calls: the hash_id unique index is the authoritative dedupe guard.
type Crawler struct {
	fetcher Fetcher
	store   *storage.Storage
	log     zerolog.Logger
}

// New creates a crawler writing to store.
func New(fetcher Fetcher, store *storage.Storage, log zerolog.Logger) *Crawler {
	return &Crawler{
		fetcher: fetcher,
		store:   store,
		log:     log.With().Str("component", "crawler").Logger(),
	}
}

// RunOnce fetches page 1 of the upstream source and stores every fresh
// Prague listing. It returns the listings inserted by this run.
//
// An upstream failure is logged and yields an empty result without error, so
// the scheduler simply waits for the next tick. Storage failures do surface.
// Only page 1 is ever requested; listings beyond it stay invisible.
func (c *Crawler) RunOnce(ctx context.Context) ([]model.Listing, error) {
	estates, err := c.fetcher.FetchEstates(ctx, 1)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to fetch estates")
		return nil, nil
	}

	fresh := make([]*model.Listing, 0)
	for _, estate := range estates {
		if !sreality.IsPragueLocality(estate.Locality) {
			continue
		}
		if estate.HashID == nil || *estate.HashID == 0 {
			continue
		}

		exists, err := c.store.Exists(*estate.HashID)
		if err != nil {
			return nil, fmt.Errorf("checking for existing listing: %w", err)
		}
		if exists {
			continue
		}

		fresh = append(fresh, buildListing(estate))
	}

	inserted, err := c.store.InsertBatch(fresh)
	if err != nil {
		return nil, fmt.Errorf("storing new listings: %w", err)
	}

	for _, listing := range inserted {
		c.log.Info().
			Int64("hash_id", listing.HashID).
			Str("locality", listing.Locality).
			Msgf("added new apartment: %s", listing.Name)
	}

	return inserted, nil
}

func buildListing(estate sreality.Estate) *model.Listing {
	size, layout := sreality.ExtractSizeAndLayout(estate.Name)

	priceUnit := estate.PriceCZK.Unit
	if priceUnit == "" {
		priceUnit = defaultPriceUnit
	}

	var lat, lon *float64
	if estate.GPS != nil {
		lat = &estate.GPS.Lat
		lon = &estate.GPS.Lon
	}

	return &model.Listing{
		HashID:     *estate.HashID,
		Name:       estate.Name,
		Price:      estate.Price,
		PriceUnit:  priceUnit,
		Locality:   estate.Locality,
		SizeSQM:    size,
		RoomLayout: layout,
		HasGarage:  sreality.HasGarage(estate.Labels, estate.LabelsAll),
		Latitude:   lat,
		Longitude:  lon,
		Images:     sreality.ExtractImages(estate.Links),
	}
}

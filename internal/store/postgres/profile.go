package postgres

import (
	"context"
	"encoding/json"

	"github.com/momo-run/momo/internal/apperr"
	"github.com/momo-run/momo/internal/models"
)

func (s *Store) GetCachedProfile(ctx context.Context, tag string) (*models.CachedProfile, error) {
	row := s.pool.QueryRow(ctx, `
SELECT container_tag, narrative, summary, cached_at FROM user_profiles WHERE container_tag=$1`, tag)

	p := &models.CachedProfile{}
	var summary []byte
	if err := row.Scan(&p.ContainerTag, &p.Narrative, &summary, &p.CachedAt); err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("no cached profile for %s", tag)
		}
		return nil, apperr.Storage(err)
	}
	if err := json.Unmarshal(summary, &p.Summary); err != nil {
		return nil, apperr.Storage(err)
	}
	return p, nil
}

func (s *Store) UpsertCachedProfile(ctx context.Context, profile *models.CachedProfile) error {
	summary, err := json.Marshal(profile.Summary)
	if err != nil {
		return apperr.Storage(err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO user_profiles (container_tag, narrative, summary, cached_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (container_tag) DO UPDATE SET narrative=$2, summary=$3, cached_at=$4`,
		profile.ContainerTag, profile.Narrative, summary, profile.CachedAt)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/nevenhsu/survey-web-sub001/internal/config"
	"github.com/nevenhsu/survey-web-sub001/internal/database"
	"github.com/nevenhsu/survey-web-sub001/internal/logger"
	"github.com/nevenhsu/survey-web-sub001/internal/model"
	"github.com/nevenhsu/survey-web-sub001/internal/repository"
	"github.com/nevenhsu/survey-web-sub001/internal/service"
)

// seed-survey validates a survey definition file and publishes it: the
// definition is upserted into PostgreSQL and refreshed in Redis.
func main() {
	var file string
	var dryRun bool
	flag.StringVar(&file, "file", "", "Path to the survey definition JSON")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate only, do not store")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if file == "" {
		log.Fatal().Msg("-file is required")
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read survey file")
	}

	var survey model.Survey
	if err := json.Unmarshal(raw, &survey); err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to decode survey")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if dryRun {
		svc := service.NewSurveyService(nil, nil, 0, log)
		if _, err := svc.Validate(&survey); err != nil {
			log.Fatal().Err(err).Str("survey_id", survey.ID).Msg("Survey is invalid")
		}
		log.Info().Str("survey_id", survey.ID).Int("quizzes", len(survey.Quizzes)).Msg("Survey is valid")
		return
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	svc := service.NewSurveyService(
		repository.NewSurveyRepository(pool),
		repository.NewSurveyCache(rdb, cfg.SurveyCacheTTL),
		cfg.SurveyCacheTTL,
		log,
	)
	if err := svc.Save(ctx, &survey); err != nil {
		log.Fatal().Err(err).Str("survey_id", survey.ID).Msg("Failed to save survey")
	}
}

// adrelay-sync runs one audience sync invocation from a JSONL record
// file (local testing / backfill harness). Each input line is one member
// record. The exit code tells the surrounding scheduler what to do next:
// 0 accepted, 75 retryable (re-run later), 1 fatal
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"adrelay/internal/adapters/partner"
	"adrelay/internal/platform/config"
	"adrelay/internal/platform/logger"
	"adrelay/internal/services/audiences/domain"
	audmod "adrelay/internal/services/audiences/module"
	"adrelay/internal/services/audiences/repo"
	"adrelay/internal/services/audiences/service"
)

// exitTempfail mirrors EX_TEMPFAIL so cron-like schedulers re-run us
const exitTempfail = 75

func main() {
	root := config.New()
	l := logger.Get()

	var (
		file       = flag.String("file", "-", "JSONL records file, - for stdin")
		audience   = flag.String("audience", "", "target audience name")
		externalID = flag.String("external-id", "", "pre-resolved partner audience id (skips lookup)")
		advertiser = flag.String("advertiser", "", "advertiser id (falls back to AUDIENCES_ADVERTISER_ID)")
		action     = flag.String("action", "add", "add or remove")
		typesCSV   = flag.String("types", "EMAIL", "enabled identifier types, e.g. EMAIL,MOBILE_AD_ID,PHONE")
	)
	flag.Parse()

	if *audience == "" && *externalID == "" {
		log.Fatal("one of -audience or -external-id is required")
	}
	if *action != "add" && *action != "remove" {
		log.Fatalf("bad -action %q", *action)
	}

	records, err := readRecords(*file)
	if err != nil {
		l.Fatal().Err(err).Str("file", *file).Msg("read records")
	}

	o := audmod.FromConfig(root)
	client := partner.NewClient(partner.Options{
		BaseURL:     o.PartnerBaseURL,
		AccessToken: o.PartnerAccessToken,
		Timeout:     o.PartnerTimeout,
		MaxRetries:  o.PartnerMaxRetries,
		RetryBase:   o.PartnerRetryBase,
	})
	svc := service.New(repo.New(client), service.Config{AdvertiserID: o.AdvertiserID})

	req := domain.SyncRequest{
		AudienceName: *audience,
		ExternalID:   *externalID,
		AdvertiserID: *advertiser,
		Action:       *action,
		EnabledTypes: *typesCSV,
		Records:      records,
	}

	ctx := logger.WithRequest(context.Background(), "", uuid.NewString())
	res, err := svc.Sync(ctx, req.ToInput())
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("sync failed")
		os.Exit(1)
	}

	logger.C(ctx).Info().
		Str("audience_id", res.AudienceID).
		Bool("created", res.Created).
		Int("rows", res.Rows).
		Int("dropped", res.Dropped).
		Str("outcome", string(res.Outcome.Status)).
		Str("reason", res.Outcome.Reason).
		Msg("sync complete")

	switch res.Outcome.Status {
	case domain.OutcomeFatal:
		os.Exit(1)
	case domain.OutcomeRetryable:
		os.Exit(exitTempfail)
	}
}

// readRecords parses one RecordDTO per JSONL line, skipping blanks
func readRecords(path string) ([]domain.RecordDTO, error) {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	var out []domain.RecordDTO
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec domain.RecordDTO
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

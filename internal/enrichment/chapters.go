package enrichment

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// chaptersStage parses platform-supplied chapters first, then falls back
// to description parsing, then leaves chapters empty. Never fatal
// (spec.md §4.5).
func chaptersStage(deps *Deps) Stage {
	return func(ctx context.Context, in *StageInput) (models.Stage, error) {
		ctx, cancel := context.WithTimeout(ctx, stageTimeout(deps.ChaptersTimeout, DefaultChaptersTimeout))
		defer cancel()

		if deps.Chapters != nil {
			chapters, err := deps.Chapters.FetchPlatformChapters(ctx, in.Video.CanonicalID)
			if err != nil {
				logger.Log.Warn("platform chapters lookup failed, falling back to description",
					zap.String("video_id", in.Video.ID.String()), zap.Error(err))
			} else if len(chapters) > 0 {
				in.Enrichment.Chapters = chapters
				in.Enrichment.ChapterSource = models.ChapterSourcePlatform
				return models.StageChapters, nil
			}
		}

		description, cost, err := deps.YouTube.FetchDescription(ctx, in.Video.CanonicalID)
		if err != nil {
			logger.Log.Warn("description fetch failed, leaving chapters empty",
				zap.String("video_id", in.Video.ID.String()), zap.Error(err))
			in.Enrichment.ChapterSource = models.ChapterSourceNone
			return models.StageChapters, nil
		}
		if err := deps.Quota.RecordQuotaUsage(ctx, cost, "videos.list.description"); err != nil {
			logger.Log.Warn("failed to record quota usage", zap.Error(err))
		}

		if chapters := parseDescriptionChapters(description, durationOrZero(in.Video.DurationSeconds)); len(chapters) > 0 {
			in.Enrichment.Chapters = chapters
			in.Enrichment.ChapterSource = models.ChapterSourceDescription
			return models.StageChapters, nil
		}

		in.Enrichment.ChapterSource = models.ChapterSourceNone
		return models.StageChapters, nil
	}
}

func durationOrZero(d *int64) float64 {
	if d == nil {
		return 0
	}
	return float64(*d)
}

// timestampLine matches a leading timestamp (h:mm:ss or m:ss) followed by
// the chapter title, the convention YouTube itself recognizes in
// descriptions for auto-generated chapters.
var timestampLine = regexp.MustCompile(`^(?:(\d{1,2}):)?(\d{1,2}):(\d{2})\s+(.+)$`)

// parseDescriptionChapters extracts chapter markers from a video
// description. YouTube requires the first timestamp to be 0:00 and at
// least three timestamps total for chapters to count; callers that don't
// meet that get an empty slice back, the same as "no chapters found".
func parseDescriptionChapters(description string, videoDuration float64) []models.Chapter {
	type marker struct {
		title string
		start float64
	}

	var markers []marker
	for _, line := range strings.Split(description, "\n") {
		m := timestampLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		seconds := toSeconds(m[1], m[2], m[3])
		title := strings.TrimSpace(m[4])
		if title == "" {
			continue
		}
		markers = append(markers, marker{title: title, start: seconds})
	}

	if len(markers) < 3 || markers[0].start != 0 {
		return nil
	}

	chapters := make([]models.Chapter, len(markers))
	for i, mk := range markers {
		end := videoDuration
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		chapters[i] = models.Chapter{Title: mk.title, Start: mk.start, End: end}
	}
	return chapters
}

func toSeconds(hours, minutes, seconds string) float64 {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	return float64(h*3600 + m*60 + s)
}

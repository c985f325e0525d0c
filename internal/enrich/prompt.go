package enrich

import (
	"fmt"
	"strings"

	"SpaceNewsAgent/internal/domain"
)

// LaunchPrompt composes the content submitted for summarization of a launch
// event: provider, site, rocket, mission and track-record facts in plain
// prose, so the model condenses content instead of following instructions.
func LaunchPrompt(rec domain.Record) string {
	l := rec.Launch
	if l == nil {
		return rec.FallbackSummary()
	}

	name := orElse(rec.Title, "Unknown Launch")
	provider := orElse(l.ProviderName, "Unknown Agency")
	site := orElse(l.LaunchSite, l.Location)
	rocketStats := fmt.Sprintf("(%d/%d successful launches)",
		l.RocketSuccessfulLaunches, l.RocketTotalLaunches)
	manufacturerStats := fmt.Sprintf("(%d/%d manufacturer successful launches)",
		l.ManufacturerSuccessfulLaunches, l.ManufacturerTotalLaunches)

	content := fmt.Sprintf(`%s will launch %s from %s using their %s.
This %s mission involves %s to %s.
The launch provider %s is %s.
The rocket has a track record of %s.
The manufacturer %s %s with %s.
Launch pad: %s. Target orbit: %s. Mission type: %s.`,
		provider, name, site, orElse(l.RocketDescription, "rocket"),
		l.MissionType, orElse(l.MissionDescription, "a space mission"), orElse(l.Orbit, "orbit"),
		provider, orElse(l.ProviderDescription, "a space company"),
		rocketStats,
		orElse(l.ManufacturerName, "of the rocket"),
		orElse(l.ManufacturerDescription, "builds launch vehicles"),
		manufacturerStats,
		l.Pad, l.Orbit, l.MissionType,
	)

	return strings.TrimSpace(content)
}

func orElse(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// Package tz holds the universe of IANA timezones the delivery engine
// schedules against. The list is embedded so that scheduling does not depend
// on the timezone database shipped with the host OS staying in sync between
// the process that writes sub-tasks and the process that selects them.
package tz

import (
	"bufio"
	"bytes"
	_ "embed"
	"strings"
	"sync"
	"time"

	// Guarantee zone data is available even on hosts without /usr/share/zoneinfo.
	_ "time/tzdata"
)

//go:embed zones.txt
var zonesRaw []byte

var (
	once     sync.Once
	allZones []string
	zoneSet  map[string]struct{}
)

func load() {
	scanner := bufio.NewScanner(bytes.NewReader(zonesRaw))
	zoneSet = make(map[string]struct{}, 640)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		allZones = append(allZones, name)
		zoneSet[name] = struct{}{}
	}
}

// All returns every supported zone name in lexical order. The returned slice
// is shared; callers must not mutate it.
func All() []string {
	once.Do(load)
	return allZones
}

// IsValid reports whether name is a supported IANA zone.
func IsValid(name string) bool {
	once.Do(load)
	_, ok := zoneSet[name]
	return ok
}

// Count returns the number of supported zones.
func Count() int {
	once.Do(load)
	return len(allZones)
}

// Location resolves a supported zone name to its *time.Location.
func Location(name string) (*time.Location, error) {
	return time.LoadLocation(name)
}

package medium

import "testing"

func testScheduler() *Scheduler { return NewScheduler(nil) }

func TestBuildRejectsMoreThanOneLinkVariant(t *testing.T) {
	cfg := &Config{
		Name: "two-variants",
		Stations: []StationConfig{
			{Name: "a", Mac: "02:00:00:00:00:01"},
			{Name: "b", Mac: "02:00:00:00:00:02"},
		},
		Links:      []LinkEntry{{StationA: "02:00:00:00:00:01", StationB: "02:00:00:00:00:02", SNR: 10}},
		ErrorProbs: []ErrorProbEntry{{StationA: "02:00:00:00:00:01", StationB: "02:00:00:00:00:02", Prob: 0.1}},
	}
	_, err := Build(cfg, nil, testScheduler(), NoopLogger())
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected a *ConfigError when more than one link variant is set, got %v (%T)", err, err)
	}
}

func TestBuildRejectsInvalidStationMAC(t *testing.T) {
	cfg := &Config{
		Name:     "bad-mac",
		Stations: []StationConfig{{Name: "a", Mac: "not-a-mac"}},
	}
	_, err := Build(cfg, nil, testScheduler(), NoopLogger())
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected a *ConfigError for an invalid MAC, got %v (%T)", err, err)
	}
}

func TestBuildDefaultVariantUsesDefaultLink(t *testing.T) {
	cfg := &Config{
		Name: "default",
		Stations: []StationConfig{
			{Name: "a", Mac: "02:00:00:00:00:01"},
			{Name: "b", Mac: "02:00:00:00:00:02"},
		},
	}
	m, err := Build(cfg, nil, testScheduler(), NoopLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := m.Link.(*DefaultLink); !ok {
		t.Fatalf("expected the default variant to install a *DefaultLink, got %T", m.Link)
	}
	if m.Stations.Len() != 2 {
		t.Fatalf("expected 2 stations, got %d", m.Stations.Len())
	}
}

func TestBuildLinksVariantSetsSymmetricEntry(t *testing.T) {
	cfg := &Config{
		Name: "links",
		Stations: []StationConfig{
			{Name: "a", Mac: "02:00:00:00:00:01"},
			{Name: "b", Mac: "02:00:00:00:00:02"},
		},
		Links: []LinkEntry{{StationA: "02:00:00:00:00:01", StationB: "02:00:00:00:00:02", SNR: 12}},
	}
	m, err := Build(cfg, nil, testScheduler(), NoopLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	link, ok := m.Link.(*SNRMatrixLink)
	if !ok {
		t.Fatalf("expected the links variant to install a *SNRMatrixLink, got %T", m.Link)
	}
	a, _ := m.Stations.LookupByVirtualAddr(mustMAC("02:00:00:00:00:01"))
	b, _ := m.Stations.LookupByVirtualAddr(mustMAC("02:00:00:00:00:02"))
	if link.Signal(a, b) != link.Signal(b, a) {
		t.Fatalf("expected the configured link entry to be symmetric")
	}
}

func TestBuildPathLossVariantPositionsStations(t *testing.T) {
	cfg := &Config{
		Name: "path-loss",
		Stations: []StationConfig{
			{Name: "a", Mac: "02:00:00:00:00:01", X: 0, Y: 0},
			{Name: "b", Mac: "02:00:00:00:00:02", X: 100, Y: 0},
		},
		PathLoss: &PathLossConfig{Gamma: 3.0, Xg: 0},
	}
	m, err := Build(cfg, nil, testScheduler(), NoopLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := m.Link.(*PathLossLink); !ok {
		t.Fatalf("expected the path_loss variant to install a *PathLossLink, got %T", m.Link)
	}
}

func TestBuildUnknownLinkEntryStationIsConfigError(t *testing.T) {
	cfg := &Config{
		Name: "bad-ref",
		Stations: []StationConfig{
			{Name: "a", Mac: "02:00:00:00:00:01"},
		},
		Links: []LinkEntry{{StationA: "02:00:00:00:00:01", StationB: "02:00:00:00:00:ff", SNR: 5}},
	}
	_, err := Build(cfg, nil, testScheduler(), NoopLogger())
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected a *ConfigError for a link entry referencing an unknown station, got %v (%T)", err, err)
	}
}

// Package config loads simulation tuning from YAML. Values missing from the
// file keep their fresh-game defaults, so a partial or absent tuning file is
// never a hard failure.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable simulation parameter.
type Config struct {
	TickRateHz int   `yaml:"tick_rate_hz"`
	GridWidth  int   `yaml:"grid_width"`
	GridHeight int   `yaml:"grid_height"`
	Border     int   `yaml:"border"`
	Seed       int64 `yaml:"seed"`

	StartingCrew int `yaml:"starting_crew"`

	// Need decay, points per sim-second.
	EnergyDecay float64 `yaml:"energy_decay"`
	HungerDecay float64 `yaml:"hunger_decay"`
	MoodDecay   float64 `yaml:"mood_decay"`

	// A* expansion cap as a fraction of grid area.
	PathBudgetFactor float64 `yaml:"path_budget_factor"`

	// System cadences, sim-seconds between runs.
	JobScanInterval     float64 `yaml:"job_scan_interval"`
	ColonyInterval      float64 `yaml:"colony_interval"`
	EconomyInterval     float64 `yaml:"economy_interval"`
	EnvironmentInterval float64 `yaml:"environment_interval"`
	LogisticsInterval   float64 `yaml:"logistics_interval"`
	ProductionInterval  float64 `yaml:"production_interval"`

	// Colony growth.
	RecruitCost     float64 `yaml:"recruit_cost"`
	BaseCapacity    int     `yaml:"base_capacity"`
	CapacityPerQtrs int     `yaml:"capacity_per_quarters"`

	// Economy.
	AutoSell      bool    `yaml:"auto_sell"`
	SellThreshold float64 `yaml:"sell_threshold"`

	// Agent action tuning.
	BuildRate  float64 `yaml:"build_rate"`
	MineRate   float64 `yaml:"mine_rate"`
	FarmRate   float64 `yaml:"farm_rate"`
	RehabRate  float64 `yaml:"rehab_rate"`
	AgentSpeed float64 `yaml:"agent_speed"`
	FoodCap    float64 `yaml:"food_cap"`

	// Fog-of-war reveal radius around agents.
	RevealRadius int `yaml:"reveal_radius"`

	NewsCap int `yaml:"news_cap"`
}

// Default returns the fresh-game configuration.
func Default() Config {
	return Config{
		TickRateHz:          5,
		GridWidth:           96,
		GridHeight:          96,
		Border:              3,
		StartingCrew:        6,
		EnergyDecay:         0.8,
		HungerDecay:         0.6,
		MoodDecay:           0.4,
		PathBudgetFactor:    0.5,
		JobScanInterval:     2.0,
		ColonyInterval:      30.0,
		EconomyInterval:     5.0,
		EnvironmentInterval: 10.0,
		LogisticsInterval:   2.0,
		ProductionInterval:  1.0,
		RecruitCost:         250,
		BaseCapacity:        4,
		CapacityPerQtrs:     4,
		AutoSell:            false,
		SellThreshold:       100,
		BuildRate:           1.0,
		MineRate:            8.0,
		FarmRate:            1.5,
		RehabRate:           10.0,
		AgentSpeed:          3.0,
		FoodCap:             200,
		RevealRadius:        4,
		NewsCap:             200,
	}
}

// Load reads tuning from path, layering the file's values over defaults.
// A missing file returns defaults without error; a malformed file is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse tuning: %w", err)
	}
	return cfg, nil
}

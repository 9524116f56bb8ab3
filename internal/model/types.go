package model

import "math"

// GeoPoint is a WGS84 coordinate pair in degrees.
type GeoPoint struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Valid reports whether the point is inside the longitude/latitude ranges.
func (p GeoPoint) Valid() bool {
	return p.Lng >= -180 && p.Lng <= 180 && p.Lat >= -90 && p.Lat <= 90 &&
		!math.IsNaN(p.Lng) && !math.IsNaN(p.Lat)
}

// Node is a single work item location (delivery stop, street entry point).
// Priority is clamped to [1,100] on ingestion; higher means more important.
type Node struct {
	ID       string         `json:"id"`
	Position GeoPoint       `json:"position"`
	Priority int            `json:"priority,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// ClampPriority forces Priority into [1,100].
func (n *Node) ClampPriority() {
	if n.Priority < 1 {
		n.Priority = 1
	}
	if n.Priority > 100 {
		n.Priority = 100
	}
}

// VehicleProfile describes one vehicle for the duration of a run.
// Cleaning fields are only consulted for area-coverage work.
type VehicleProfile struct {
	ID              string  `json:"id"`
	FuelType        string  `json:"fuelType,omitempty"`
	FuelCapacityL   float64 `json:"fuelCapacityL,omitempty"`
	AvgSpeedKmh     float64 `json:"avgSpeedKmh,omitempty"`
	ConsumptionL100 float64 `json:"consumptionL100,omitempty"` // L per 100 km
	CleaningWidthM  float64 `json:"cleaningWidthM,omitempty"`
	TurnRadiusM     float64 `json:"turnRadiusM,omitempty"`
	MaxSpeedKmh     float64 `json:"maxSpeedKmh,omitempty"`
	CapacityKg      float64 `json:"capacityKg,omitempty"`
}

// TimeWindow bounds service at a node, in minutes from route start.
type TimeWindow struct {
	EarliestMin float64 `json:"earliestMin"`
	LatestMin   float64 `json:"latestMin"`
}

// RouteConstraints is the optional constraint bundle attached to one request.
type RouteConstraints struct {
	TimeWindows       map[string]TimeWindow `json:"timeWindows,omitempty"`
	MaxDurationMin    float64               `json:"maxDurationMin,omitempty"`
	MaxDistanceM      float64               `json:"maxDistanceM,omitempty"`
	VehicleCapacity   float64               `json:"vehicleCapacity,omitempty"`
	Demands           map[string]float64    `json:"demands,omitempty"` // nodeID -> demand
	MandatoryNodes    []string              `json:"mandatoryNodes,omitempty"`
	ForbiddenEdges    [][2]string           `json:"forbiddenEdges,omitempty"` // unordered pairs
	ServiceTimeMin    float64               `json:"serviceTimeMin,omitempty"` // default per node
	ServiceTimes      map[string]float64    `json:"serviceTimes,omitempty"`   // per-node override
	MaxStops          int                   `json:"maxStops,omitempty"`
	BreakAfterHours   float64               `json:"breakAfterHours,omitempty"`
	BreakDurationMin  float64               `json:"breakDurationMin,omitempty"`
	BlockingTimeRange *TimeWindow           `json:"blockingTimeRange,omitempty"` // minutes from day start
}

// HasMandatory reports whether id is in the mandatory set.
func (c *RouteConstraints) HasMandatory(id string) bool {
	for _, m := range c.MandatoryNodes {
		if m == id {
			return true
		}
	}
	return false
}

// ServiceTimeFor returns the per-node service time, falling back to the default.
func (c *RouteConstraints) ServiceTimeFor(id string) float64 {
	if c.ServiceTimes != nil {
		if v, ok := c.ServiceTimes[id]; ok {
			return v
		}
	}
	return c.ServiceTimeMin
}

// Solution is the result of one solver strategy: an ordered sequence plus
// aggregate metrics. Value type, replaced rather than mutated across stages.
type Solution struct {
	Sequence       []Node  `json:"sequence"`
	TotalDistanceM float64 `json:"totalDistanceM"`
	TotalTimeMin   float64 `json:"totalTimeMin"`
	FuelCostL      float64 `json:"fuelCostL"`
	Efficiency     float64 `json:"efficiency"` // percent improvement vs baseline, [0,100]
	Algorithm      string  `json:"algorithm,omitempty"`
	Iterations     int     `json:"iterations,omitempty"`
}

// Violation is one constraint breach found by the validator.
type Violation struct {
	Code     string `json:"code"`
	Severity string `json:"severity"` // ERROR or WARNING
	Detail   string `json:"detail"`
}

// WorkItem is a schedulable unit of cleaning/delivery work.
type WorkItem struct {
	Node
	DurationMin     float64 `json:"durationMin"`
	HoursSinceDone  float64 `json:"hoursSinceDone,omitempty"` // since last service
	Surface         string  `json:"surface,omitempty"`        // asphalt, concrete, cobblestone...
	Condition       string  `json:"condition,omitempty"`      // light, normal, heavy
	TrafficPeakHour int     `json:"trafficPeakHour,omitempty"`
	DemandKg        float64 `json:"demandKg,omitempty"`
}

// ScheduleBlock is one time block assigned to a vehicle. Half-open [Start,End).
type ScheduleBlock struct {
	ID        string     `json:"id"`
	VehicleID string     `json:"vehicleId"`
	StartMin  float64    `json:"startMin"` // minutes from day start
	EndMin    float64    `json:"endMin"`
	Items     []WorkItem `json:"items"`
	Priority  float64    `json:"priority"`
	Overtime  bool       `json:"overtime,omitempty"`
}

// Schedule is the output of one scheduling pass.
type Schedule struct {
	ID                 string          `json:"id"`
	Date               string          `json:"date"`
	Blocks             []ScheduleBlock `json:"blocks"`
	TotalTimeMin       float64         `json:"totalTimeMin"`
	TotalFuelCostL     float64         `json:"totalFuelCostL"`
	CoverageEfficiency float64         `json:"coverageEfficiency"` // percent of items placed
	Violations         []Violation     `json:"violations,omitempty"`
}

// OptimizeOptions tunes one solver run.
type OptimizeOptions struct {
	Algorithm        string  `json:"algorithm,omitempty"` // nearest_neighbor, genetic, ant_colony, hybrid
	MaxIterations    int     `json:"maxIterations,omitempty"`
	PopulationSize   int     `json:"populationSize,omitempty"`
	MutationRate     float64 `json:"mutationRate,omitempty"`
	EliteRatio       float64 `json:"eliteRatio,omitempty"`
	TimeLimitMs      int     `json:"timeLimitMs,omitempty"`
	PriorityWeight   float64 `json:"priorityWeight,omitempty"` // [0,1]
	FuelOptimization bool    `json:"fuelOptimization,omitempty"`
	Seed             int64   `json:"seed,omitempty"`
}

// OptimizeRequest is the primary optimization call body.
type OptimizeRequest struct {
	Nodes       []Node            `json:"nodes"`
	Start       GeoPoint          `json:"start"`
	Vehicle     *VehicleProfile   `json:"vehicle,omitempty"`
	Constraints *RouteConstraints `json:"constraints,omitempty"`
	Options     OptimizeOptions   `json:"options"`
}

// ScheduleRequest drives one Priority Scheduler pass.
type ScheduleRequest struct {
	Items       []WorkItem        `json:"items"`
	Vehicles    []VehicleProfile  `json:"vehicles"`
	Constraints *RouteConstraints `json:"constraints,omitempty"`
	Date        string            `json:"date"`
	Options     ScheduleOptions   `json:"options"`
}

// ScheduleOptions tunes block partitioning.
type ScheduleOptions struct {
	WorkdayStartMin  float64 `json:"workdayStartMin,omitempty"` // default 480 (08:00)
	WorkdayEndMin    float64 `json:"workdayEndMin,omitempty"`   // default 960 (16:00)
	BlockDurationMin float64 `json:"blockDurationMin,omitempty"`
	AllowOvertime    bool    `json:"allowOvertime,omitempty"`
	MaxOvertimeMin   float64 `json:"maxOvertimeMin,omitempty"`
}

// CleaningRequest is the Route Integrator entry point.
type CleaningRequest struct {
	Area     []WorkItem       `json:"area"`
	Vehicles []VehicleProfile `json:"vehicles"`
	Date     string           `json:"date"`
	Options  CleaningOptions  `json:"options"`
}

// CleaningOptions selects the optimization level and pattern.
type CleaningOptions struct {
	Level       string          `json:"level,omitempty"` // basic, standard, advanced, maximum
	Pattern     string          `json:"pattern,omitempty"`
	CellSizeM   float64         `json:"cellSizeM,omitempty"`
	Solver      OptimizeOptions `json:"solver,omitempty"`
	ScheduleOpt ScheduleOptions `json:"schedule,omitempty"`
}

// VehicleRoute is one vehicle's share of a cleaning plan.
type VehicleRoute struct {
	VehicleID string   `json:"vehicleId"`
	Solution  Solution `json:"solution"`
}

// Recommendation is an actionable hint emitted by the integrator or
// the fuel strategy optimizer.
type Recommendation struct {
	Kind     string  `json:"kind"` // fuel, time, coverage, scheduling, equipment
	Priority string  `json:"priority"`
	Message  string  `json:"message"`
	Value    float64 `json:"value,omitempty"`
}

// PerformanceMetrics compares a plan against the naive baseline.
type PerformanceMetrics struct {
	BaselineDistanceM  float64 `json:"baselineDistanceM"`
	OptimizedDistanceM float64 `json:"optimizedDistanceM"`
	BaselineTimeMin    float64 `json:"baselineTimeMin"`
	OptimizedTimeMin   float64 `json:"optimizedTimeMin"`
	BaselineFuelL      float64 `json:"baselineFuelL"`
	OptimizedFuelL     float64 `json:"optimizedFuelL"`
	EfficiencyGain     float64 `json:"efficiencyGain"` // [0,100]
}

// CleaningPlan is the Route Integrator output.
type CleaningPlan struct {
	ID              string             `json:"id"`
	Date            string             `json:"date"`
	Level           string             `json:"level"`
	VehicleRoutes   []VehicleRoute     `json:"vehicleRoutes"`
	Schedule        *Schedule          `json:"schedule,omitempty"`
	FuelPlan        *FuelPlan          `json:"fuelPlan,omitempty"`
	Emissions       *EmissionEstimate  `json:"emissions,omitempty"`
	Metrics         PerformanceMetrics `json:"performanceMetrics"`
	Recommendations []Recommendation   `json:"recommendations,omitempty"`
}

// SpeedAdvice recommends a per-segment cruise speed.
type SpeedAdvice struct {
	SegmentID       string  `json:"segmentId"`
	CurrentKmh      float64 `json:"currentKmh"`
	RecommendedKmh  float64 `json:"recommendedKmh"`
	FuelSavedL      float64 `json:"fuelSavedL"`
	EffectivenessPc float64 `json:"effectivenessPc"`
}

// EquipmentAdvice proposes equipment settings for a surface/condition pair.
type EquipmentAdvice struct {
	Surface       string  `json:"surface"`
	Condition     string  `json:"condition"`
	SuctionPc     float64 `json:"suctionPc"`
	WaterPc       float64 `json:"waterPc"`
	BrushSpeedPc  float64 `json:"brushSpeedPc"`
	ExpectedLSave float64 `json:"expectedLSave,omitempty"`
}

// FuelPlan aggregates fuel strategy output for a route.
type FuelPlan struct {
	CurrentFuelL    float64           `json:"currentFuelL"`
	OptimizedFuelL  float64           `json:"optimizedFuelL"`
	SpeedAdvice     []SpeedAdvice     `json:"speedAdvice,omitempty"`
	EquipmentAdvice []EquipmentAdvice `json:"equipmentAdvice,omitempty"`
}

// EmissionEstimate aggregates combustion emissions over a plan, in kg.
// CO2EqKg folds NOx in at its global warming potential.
type EmissionEstimate struct {
	CO2Kg       float64 `json:"co2Kg"`
	NOxKg       float64 `json:"noxKg"`
	PMKg        float64 `json:"pmKg"`
	CO2EqKg     float64 `json:"co2EqKg"`
	LifecycleKg float64 `json:"lifecycleKg"`
}

// OptimizationRun is the persisted record of one optimize call.
type OptimizationRun struct {
	ID         string      `json:"id"`
	VehicleID  string      `json:"vehicleId,omitempty"`
	Algorithm  string      `json:"algorithm"`
	NodeCount  int         `json:"nodeCount"`
	Solution   Solution    `json:"solution"`
	Violations []Violation `json:"violations,omitempty"`
	CreatedAt  string      `json:"createdAt"`
}

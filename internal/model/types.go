package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord is the persisted summary of one finished search run.
type RunRecord struct {
	VersionedRecord
	ID            string  `json:"id"`
	CreatedAtUTC  string  `json:"created_at_utc"`
	Problem       string  `json:"problem"`
	ProblemFile   string  `json:"problem_file"`
	Algorithm     string  `json:"algorithm"`
	Mu            int     `json:"mu"`
	Lambda        int     `json:"lambda"`
	Selection     string  `json:"selection"`
	TournSize     int     `json:"tourn_size,omitempty"`
	Crossover     bool    `json:"crossover"`
	Fast          bool    `json:"fast"`
	Repair        bool    `json:"repair"`
	Discard       bool    `json:"discard"`
	SelfAdjust    bool    `json:"self_adjust"`
	Seed          int64   `json:"seed"`
	MaxEvals      int     `json:"max_evals"`
	BestGenome    string  `json:"best_genome"`
	BestFitness   float64 `json:"best_fitness"`
	Evaluations   int     `json:"evaluations"`
	Generations   int     `json:"generations"`
	ResultsFolder string  `json:"results_folder,omitempty"`
}

// TracePoint is one convergence checkpoint of a run.
type TracePoint struct {
	Generation  int     `json:"generation"`
	Evaluations int     `json:"evaluations"`
	BestFitness float64 `json:"best_fitness"`
	Lambda      float64 `json:"lambda,omitempty"`
}

package entity

// Distribution modes.
const (
	DistributionAuto   = "auto"
	DistributionManual = "manual"
)

// DistributionSettings configures automatic assignment of unassigned
// conversations. Read by the assignment engine on every distribution pass.
type DistributionSettings struct {
	Enabled      bool     `json:"enabled" bson:"enabled"`
	Mode         string   `json:"mode" bson:"mode"`
	Participants []string `json:"participants" bson:"participants"`
}

func (d *DistributionSettings) Active() bool {
	return d.Enabled && len(d.Participants) > 0
}

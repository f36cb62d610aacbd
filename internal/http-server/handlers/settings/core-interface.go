package settings

import "LeadDesk/entity"

type Core interface {
	DistributionSettings() (*entity.DistributionSettings, error)
	UpdateDistributionSettings(settings *entity.DistributionSettings) error
}

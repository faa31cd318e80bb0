package model

// NotificationSettings is a singleton row controlling alert behavior.
type NotificationSettings struct {
	ID                   uint `gorm:"primaryKey" json:"id"`
	MasterEnabled        bool `gorm:"default:true" json:"master_enabled"`
	EnableDelayAlerts    bool `gorm:"default:true" json:"enable_delay_alerts"`
	DelayThresholdHours  int  `gorm:"default:12" json:"delay_threshold_hours"`
	EnableIncidentAlerts bool `gorm:"default:true" json:"enable_incident_alerts"`
}

func (NotificationSettings) TableName() string {
	return "notification_settings"
}

// NewDefaultNotificationSettings returns settings with default values.
func NewDefaultNotificationSettings() *NotificationSettings {
	return &NotificationSettings{
		MasterEnabled:        true,
		EnableDelayAlerts:    true,
		DelayThresholdHours:  12,
		EnableIncidentAlerts: true,
	}
}

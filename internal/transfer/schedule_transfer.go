package transfer

type ScheduleInput struct {
	CronExpression  string `json:"cron_expression"`
	Timezone        string `json:"timezone"`
	Channel         string `json:"channel"`
	ContentTemplate string `json:"content_template"`
	GenerateImage   bool   `json:"generate_image"`
	GenerateVoice   bool   `json:"generate_voice"`
	ContentType     string `json:"content_type"`
	Active          *bool  `json:"active"`
}

type CronValidation struct {
	Valid    bool     `json:"valid"`
	NextRuns []string `json:"next_runs,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type CronExample struct {
	Expression  string `json:"expression"`
	Description string `json:"description"`
}

type CronCheck struct {
	CronExpression string `json:"cron_expression"`
	Timezone       string `json:"timezone"`
}

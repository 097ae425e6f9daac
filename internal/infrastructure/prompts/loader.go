package prompts

import (
	_ "embed"
)

//go:embed system.txt
var SystemTemplate string

//go:embed greeting.txt
var GreetingTemplate string

//go:embed resume.txt
var ResumeTemplate string

//go:embed market_context.txt
var DefaultMarketContext string

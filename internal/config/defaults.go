package config

import (
	"time"

	"github.com/spf13/viper"
)

// operationDefaults carries the per-operation values that differ from the
// global AI settings.
type operationDefaults struct {
	maxTokens   int32
	temperature float32
	timeout     time.Duration
}

var operationTuning = map[string]operationDefaults{
	OpQuestions:      {maxTokens: 2000, temperature: 0.7, timeout: 90 * time.Second},
	OpFollowUps:      {maxTokens: 2000, temperature: 0.7, timeout: 60 * time.Second},
	OpSuggestions:    {maxTokens: 2000, temperature: 0.7, timeout: 45 * time.Second},
	OpEvaluation:     {maxTokens: 2500, temperature: 0.7, timeout: 90 * time.Second},
	OpTone:           {maxTokens: 2000, temperature: 0.7, timeout: 60 * time.Second},
	OpComparison:     {maxTokens: 3000, temperature: 0.7, timeout: 120 * time.Second},
	OpResumeFeedback: {maxTokens: 200, temperature: 0.7, timeout: 30 * time.Second},
	OpResumeFollowUp: {maxTokens: 600, temperature: 0.6, timeout: 45 * time.Second},
}

const defaultSystemPrompt = `You are an expert in creating job interview questions.
When generating questions, you must return them in valid JSON format.
Do not include any explanations, markdown formatting, or text outside of the JSON structure.
Check that your output is valid, well-formed JSON before returning it.`

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.embeddingModel", "text-embedding-004")
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.maxTokens", 2000)
	v.SetDefault("ai.useSystemPrompts", true)
	v.SetDefault("ai.systemPrompt", defaultSystemPrompt)

	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	for op, d := range operationTuning {
		prefix := "ai.operations." + op + "."
		v.SetDefault(prefix+"provider", "")
		v.SetDefault(prefix+"model", "")
		v.SetDefault(prefix+"apiKey", "")
		v.SetDefault(prefix+"maxTokens", d.maxTokens)
		v.SetDefault(prefix+"temperature", d.temperature)
		v.SetDefault(prefix+"timeout", d.timeout)
		v.SetDefault(prefix+"systemPrompt", "")
	}
	v.SetDefault("ai.operations."+OpResumeFeedback+".systemPrompt", "You are a helpful career advisor.")
	v.SetDefault("ai.operations."+OpResumeFollowUp+".systemPrompt",
		"You are a technical interviewer generating follow-up interview questions.")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 150*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)
	v.SetDefault("server.cors.allowedOrigins", []string{"*"})
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.clientAuthPolicy", "require")

	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024)
	v.SetDefault("app.maxUploadSize", 32*1024*1024)

	v.SetDefault("extraction.repairJSON", false)
	v.SetDefault("extraction.questionExcerpt", 500)
	v.SetDefault("extraction.reportExcerpt", 1000)

	v.SetDefault("matcher.skillsFile", "")
	v.SetDefault("matcher.watchSkills", false)
	v.SetDefault("matcher.concurrency", 4)
	v.SetDefault("matcher.skillWeight", 0.4)
	v.SetDefault("matcher.semanticWeight", 0.6)
	v.SetDefault("matcher.useEmbeddings", true)
	v.SetDefault("matcher.defaultTitle", "Frontend Developer")
	v.SetDefault("matcher.defaultCompany", "TechCorp")

	v.SetDefault("feedback.driver", "memory")
	v.SetDefault("feedback.redis.addr", "")
	v.SetDefault("feedback.redis.password", "")
	v.SetDefault("feedback.redis.db", 0)
	v.SetDefault("feedback.redis.keyPrefix", "hirescope:feedback")
	v.SetDefault("feedback.postgres.dsn", "")
	v.SetDefault("feedback.postgres.maxOpenConns", 5)
	v.SetDefault("feedback.postgres.ensureSchema", true)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.feedbackDSN", "")

	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "hirescope")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

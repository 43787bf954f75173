// Package backend wraps the remote translation services and the failover
// logic that makes them dependable.
//
// Each provider (SiliconFlow, Alibaba, DeepSeek, OpenRouter, Gemini) is a
// Backend implementation selected by name through the registry; credentials
// come from per-provider environment variables and never touch configuration
// files or logs. The Executor layers bounded per-backend retries and ordered
// failover on top of the single-shot clients.
package backend

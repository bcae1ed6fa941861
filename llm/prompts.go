package llm

import "fmt"

const responseFormat = `Response format (JSON only):
{
    "prediction": "PHISHING",
    "confidence": %s,
    "explanation": "%s",
    "risk_factors": [%s],
    "recommendations": [%s]
}
`

const urlPrompt = `
You are a cybersecurity expert analyzing URLs for phishing indicators.

URL: %s

Important:
- If ANY phishing indicator is present, prediction MUST be "PHISHING".
- Do NOT classify as "LEGITIMATE" unless you are certain the link is safe.
- When in doubt, default to "PHISHING".

Analyze this URL and provide a JSON response with:
1. prediction: "PHISHING" or "LEGITIMATE"
2. confidence: score from 0.0 to 1.0
3. explanation: detailed reasoning
4. risk_factors: list of suspicious elements found
5. recommendations: security advice

Consider these factors:
- Domain reputation and age
- Suspicious subdomains or paths
- URL shortening services
- Typosquatting attempts
- HTTPS vs HTTP
- Suspicious TLDs (.tk, .ml, .ga, etc.)
- IP addresses instead of domains
- Special characters and encoding

`

const textPrompt = `
You are a cybersecurity expert analyzing text content for phishing indicators.

Text: %s

Analyze this text and provide a JSON response with:
1. prediction: "PHISHING" or "LEGITIMATE"
2. confidence: score from 0.0 to 1.0
3. explanation: detailed reasoning
4. risk_factors: list of suspicious elements found
5. recommendations: security advice

Consider these factors:
- Urgency and pressure tactics
- Authority impersonation
- Suspicious requests (passwords, payments)
- Grammar and spelling errors
- Emotional manipulation
- Threats or consequences
- Unusual formatting or characters
- Social engineering techniques

`

const hybridPrompt = `
You are a cybersecurity expert analyzing both URL and text content for phishing indicators.

URL: %s
Text: %s

Analyze both elements together and provide a JSON response with:
1. prediction: "PHISHING" or "LEGITIMATE"
2. confidence: score from 0.0 to 1.0
3. explanation: detailed reasoning considering both URL and text
4. risk_factors: list of suspicious elements found in both
5. recommendations: comprehensive security advice

Consider:
- Consistency between URL and text content
- Combined risk factors
- Cross-referencing suspicious elements
- Overall threat assessment

`

const explainPrompt = `
Explain why this content was classified as %s:

URL: %s
Text: %s

Provide a detailed, educational explanation suitable for end users.
`

func BuildURLPrompt(url string) string {
	return fmt.Sprintf(urlPrompt, url) + fmt.Sprintf(responseFormat,
		"0.85",
		"This URL shows multiple red flags...",
		`"suspicious domain", "http instead of https"`,
		`"Avoid clicking", "Report to security team"`)
}

func BuildTextPrompt(text string) string {
	return fmt.Sprintf(textPrompt, text) + fmt.Sprintf(responseFormat,
		"0.90",
		"This text contains classic phishing tactics...",
		`"urgency tactics", "authority impersonation"`,
		`"Do not respond", "Verify sender identity"`)
}

func BuildHybridPrompt(url, text string) string {
	return fmt.Sprintf(hybridPrompt, url, text) + fmt.Sprintf(responseFormat,
		"0.95",
		"Both URL and text show coordinated phishing attempts...",
		`"suspicious domain", "urgency tactics", "authority impersonation"`,
		`"Avoid interaction", "Report to security", "Educate users"`)
}

func BuildExplainPrompt(prediction, url, text string) string {
	return fmt.Sprintf(explainPrompt, prediction, url, text)
}

package agent

import (
	"fmt"

	"github.com/hupe1980/agentrouter/backend"
)

// NewBankingAgent creates the banking onboarding specialist: a relationship
// manager persona guiding customers through account opening and KYC.
func NewBankingAgent(b backend.Backend, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	fns := append([]func(o *ModelAgentOptions){func(o *ModelAgentOptions) {
		o.Description = "Handles account opening, customer onboarding, KYC and general banking services."
		o.Instruction = `You are a helpful banking relationship manager assistant. Your role is to help customers open new bank accounts and guide them through the onboarding process. You should:

1. Collect necessary customer information (name, address, date of birth, ID information)
2. Explain account options and requirements
3. Help customers complete required documentation
4. Answer questions about banking services
5. Ensure compliance with banking regulations

Always be professional, friendly and precise.`
	}}, optFns...)
	return NewModelAgent("Banking Agent", b, fns...)
}

// NewDocumentAgent creates the document processing specialist for passports,
// bank statements and other identity documents.
func NewDocumentAgent(b backend.Backend, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	fns := append([]func(o *ModelAgentOptions){func(o *ModelAgentOptions) {
		o.Description = "Processes and validates documents like passports, bank statements and identity papers."
		o.Instruction = `You are a document processing assistant specialized in banking and identity documents. Your role is to:

1. Extract information from various document types (passports, bank statements, etc.)
2. Validate document authenticity and expiration
3. Organize and summarize document information
4. Flag potential issues or discrepancies

Be precise and conservative: never invent field values that are not present.`
	}}, optFns...)
	return NewModelAgent("Document Agent", b, fns...)
}

// NewComedianAgent creates a stand-up comedian persona (the Joe/Cathy demo
// agents). Each comedian starts the next joke from the punchline of the
// previous one.
func NewComedianAgent(name string, b backend.Backend, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	fns := append([]func(o *ModelAgentOptions){func(o *ModelAgentOptions) {
		o.Description = fmt.Sprintf("Your name is %s and you are a stand-up comedian.", name)
		o.Instruction = fmt.Sprintf(
			"Your name is %s and you are a stand-up comedian. Start the next joke from the punchline of the previous joke.",
			name,
		)
	}}, optFns...)
	return NewModelAgent(name, b, fns...)
}

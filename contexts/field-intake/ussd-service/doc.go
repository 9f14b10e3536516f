// Package ussdservice drives the USSD data-entry dialogue inside the
// field-intake context.
//
// The channel is store-and-forward request/response: every turn must load
// the conversation from the session store, decide on exactly one prompt,
// and say whether more input is expected. Handlers are total per step --
// expected input advances, "0" exits, anything else re-prompts -- and a
// persistence failure re-emits the current prompt so a redelivered turn
// finds the conversation exactly where it was.
package ussdservice

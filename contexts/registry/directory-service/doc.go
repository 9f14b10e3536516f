// Package directoryservice implements the electoral directory inside the
// registry context.
//
// The module owns polling centers, candidates, and field agents. Centers
// anchor every anomaly bound through their registered-voter counts, and
// agents carry the phone-number identities and roles that gate both USSD
// submissions and review actions. Business rules stay in application/domain
// layers; infrastructure sits behind ports and adapters.
package directoryservice

// Package tokens provides token estimation for prompt budgeting.
//
// The prompt fitter admits chat messages against a token budget, so every
// message fragment is measured with an Estimator before it is added.
//
// # Estimators
//
//   - SimpleEstimator divides the character count by a model-specific
//     characters-per-token ratio. It is fast and needs no data files.
//   - TiktokenEstimator encodes text with a BPE encoding (cl100k_base by
//     default) and counts the resulting tokens.
//
// # Usage
//
//	est, err := tokens.NewEstimator(&cfg.Processing.Tokens)
//	if err != nil {
//		return err
//	}
//	counter := tokens.Bind(est, connection.Model)
//	n := counter.CountTokens("### Instruction:\nAlice: Hi")
package tokens

// Package secrets resolves secret references in connection records.
//
// A connection key may hold the key itself or a reference of the form
// ${secret:name}. References are resolved at dispatch time against an
// ordered list of providers, so keys can live in the environment or in a
// mounted secrets directory instead of the records file.
//
// # Providers
//
//   - EnvProvider reads LOOM_SECRET_<NAME>, with the name upper-cased and
//     hyphens turned into underscores.
//   - FileProvider reads <dir>/<name>. Files readable by group or others
//     are refused.
//
// The Manager tries providers in order and caches hits for a configurable
// TTL.
//
// # Usage
//
//	m := secrets.NewManager([]secrets.Provider{
//		secrets.NewEnvProvider("LOOM_SECRET_"),
//	}, secrets.WithCacheTTL(time.Minute))
//	key, err := m.Resolve(ctx, "${secret:mancer-key}")
package secrets

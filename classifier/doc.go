// Package classifier maps a feature vector to a screening label.
//
// A Store owns the model handle: it loads a JSON or msgpack artifact from a
// configured path, retries lazily while the file is missing, and can hot-swap
// the model when the file changes. An Adapter evaluates the current model and
// never returns an error: an unavailable model or a shape mismatch resolves
// to Result{Label: LabelUnknown, Probability: 0}.
//
//	store := classifier.NewStore(cfg, log)
//	_ = store.Start(ctx)
//	res := classifier.NewAdapter(store, log, metrics).Classify(ctx, vec)
package classifier

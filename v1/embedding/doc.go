// Package embedding turns text into dense vectors through a remote inference
// endpoint (Text Embeddings Inference or any Hugging Face style server).
//
// Each text is sent as its own request:
//
//	POST <endpoint>
//	Authorization: Bearer <token>      (only when a token is configured)
//	{"inputs": "<text>"}
//
// and the response may be an object list ([{"embedding": [...]}]), a nested
// list ([[...]]) or a flat vector ([...]).
//
// # Retries
//
// Every text gets Config.MaxRetries attempts. Between attempts the client
// sleeps 2^attempt seconds. HTTP 429 is always retried; other statuses and
// transport failures are retried until the final attempt, which surfaces an
// *EndpointError or *TransportError. A final attempt that is rate limited
// yields ErrExhaustedRetries.
//
// # Usage
//
//	client, err := embedding.NewClient(embedding.Config{
//	    Endpoint: "https://tei.internal/embed",
//	    APIToken: token,
//	})
//	if err != nil {
//	    return err
//	}
//	vec, err := client.EmbedQuery(ctx, "What is a vector store?")
//
// EmbedDocuments embeds a batch, preserving order; Config.Concurrency bounds
// parallelism (default 1, sequential).
//
// # Fx
//
//	fx.New(
//	    fx.Supply(embeddingCfg),
//	    embedding.FXModule,
//	)
package embedding

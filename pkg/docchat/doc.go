// Package docchat provides an embedded Go client for the docchat
// question-answering pipeline: hybrid retrieval over a Redis vector index
// combined with streamed answer generation.
//
// The client wires the full pipeline in-process, so only the vector store
// and the model providers are external:
//
//	client, _ := docchat.New(ctx,
//	    docchat.WithRedis("localhost:6379", ""),
//	    docchat.WithEmbedder(myEmbedder),
//	    docchat.WithGenerator(myGenerator),
//	)
//	defer client.Close()
//
//	units, _ := client.Ask(ctx, "What is the capital of France?")
//	for u := range units {
//	    if u.Err != nil {
//	        break
//	    }
//	    fmt.Print(u.Chunk)
//	}
package docchat

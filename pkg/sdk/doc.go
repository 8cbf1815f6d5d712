// Package matchdex embeds the matching and recommendation engine in a Go
// program without running the matchdex server.
//
// Scoring, slate curation and semantic search run in memory. A Redis
// connection is optional and only backs dismissal feedback.
//
//	eng, _ := matchdex.New(ctx,
//	    matchdex.WithEmbedder(myEmbedder),
//	    matchdex.WithSlateCap(5),
//	)
//	defer eng.Close()
//
//	slate, ok, _ := eng.CurateSlate(ctx, client, listings)
//	_ = eng.RebuildIndex(ctx, clients)
//	ids, _ := eng.SemanticSearch(ctx, "young family, near good schools", 10)
package matchdex

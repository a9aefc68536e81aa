// Package ingest turns text sources into word ids and bigram counts.
//
// A Tokenizer streams whitespace-separated tokens from a reader, normalized
// to Unicode NFC. Feed resolves every token through a Sink and accumulates
// each adjacent pair in order of appearance. An Ingester ties this to a
// store: each source is ingested inside one store batch, so a source that
// fails part way leaves no counts behind.
//
// Sources that cannot be opened or read are reported as *MissingSourceError
// and skipped by IngestFiles; storage failures abort the run.
package ingest

// Package catalog mirrors the public course catalog into the store.
//
// Sync walks the paginated catalog API by following each page's next link,
// retrying a failed page a fixed number of times with a fixed backoff and
// pausing between pages, then upserts the collected courses in batches.
package catalog

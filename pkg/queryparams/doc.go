// Package queryparams holds a session's URL query parameters and keeps the
// browser in sync with them.
//
// A Store is an ordered mapping from string keys to single- or multi-valued
// string entries. Every mutation (Set, Delete, Clear) publishes the new
// canonical query string to the owning session before it returns:
//
//	params := queryparams.New(queryparams.WithContext(func() queryparams.Context {
//	    return sess
//	}))
//	params.Set("page", queryparams.Single("2"))
//	params.Set("tags", queryparams.Multi("go", "web"))
//
//	page, _ := params.Get("page")   // "2"
//	tag, _ := params.Get("tags")    // "web" (last value wins)
//	all := params.GetAll("tags")    // ["go", "web"]
//
// Attribute-style access goes through Attrs and reports missing keys as
// *AttributeError instead of *KeyError, with the same message.
//
// # Thread Safety
//
// A Store belongs to one session and is used from that session's script
// goroutine only. It does no locking.
package queryparams

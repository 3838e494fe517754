// Package ogm maps typed, uniquely keyed nodes and named relationships onto
// a property-graph store.
//
// A node is identified by its type and a caller-chosen uid, unique within
// the type through a store index named after the type. Creating a node is
// get-or-create: an existing node with the same attributes is returned,
// while one with different attributes is a conflict (ErrConflict).
// Timestamps never count as a difference.
//
// Relationships are created by Connect, at most one per name and ordered
// pair of nodes, keyed by a computed rid.
//
// Query results are classified into a tagged Value: scalar, node,
// relationship, path, or list for multi-column rows.
//
// Every Client method runs on the store handle bound to its context:
//
//	mgr := conn.NewManager(conn.StoreFactory(cfg, logger))
//	client := ogm.NewClient(mgr)
//
//	ctx, err := mgr.Bind(ctx)
//	if err != nil {
//	    return err
//	}
//	web, err := client.CreateNode(ctx, "Host", "web-1", map[string]any{"port": 443})
//	db, err := client.CreateNode(ctx, "Host", "db-1", nil)
//	_, err = client.Connect(ctx, "talks_to", []ogm.Pair{ogm.Link(web, db)}, nil)
package ogm

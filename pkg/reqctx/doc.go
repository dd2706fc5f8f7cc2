// Package reqctx carries request-scoped values through context.Context.
//
// HTTP middleware populates these values; services and handlers read them
// without depending on the transport:
//
//	meta, ok := reqctx.RequestMetaFromContext(ctx)
//	token := reqctx.AdminTokenFromContext(ctx)
//
// Nothing here performs I/O.
package reqctx

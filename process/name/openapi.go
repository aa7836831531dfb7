package name

import (
	"github.com/sirupsen/logrus"

	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/scope"
	"github.com/kstasik/schema-tools/traverse"
)

// OpenapiNamerOptions configures NameOpenapi. ResourceMethodVersion,
// Overwrite, and OverwriteAmbiguous mirror the Rust original's
// OpenapiNamerOptions fields one-for-one. NameOpenapi does not read
// OverwriteAmbiguous: schemas directly under a oneOf/anyOf are named the
// same way as any other nested schema.
type OpenapiNamerOptions struct {
	ResourceMethodVersion bool
	Overwrite             bool
	OverwriteAmbiguous    bool
	Log                   logrus.FieldLogger
}

// NameOperationIDs runs just the paths.*.* operationId pass, without
// touching component schema titles. Grounded on
// original_source/src/process/name/mod.rs's plain Namer (distinct from the
// fuller OpenapiNamer in openapi.rs, which NameOpenapi below mirrors).
func NameOperationIDs(root interface{}, resourceMethodVersion bool, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := scope.New()
	return nameOperationIDs(root, s, OpenapiNamerOptions{ResourceMethodVersion: resourceMethodVersion, Log: log})
}

// NameOpenapi runs the four sequential naming passes over an OpenAPI
// document: components.schemas titles, components.responses.*.content.*
// schema titles, components.requestBodies.*.content.*.schema titles, and
// paths.*.* operationIds. Grounded on
// original_source/src/process/name/openapi.rs.
func NameOpenapi(root interface{}, opts OpenapiNamerOptions) error {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	schemaOpts := SchemaNamerOptions{Overwrite: opts.Overwrite, Log: opts.Log}

	s := scope.New()
	err := traverse.EachNode(root, s, "/any:components/any:schemas/definition:*", func(node interface{}, parts []string, ctx *scope.Scope) error {
		if len(parts) != 1 {
			return nil
		}
		ctx.PushGlue(parts[0])
		err := NameSchema(node, ctx, schemaOpts)
		ctx.Pop()
		return err
	})
	if err != nil {
		return err
	}

	err = traverse.EachNode(root, s, "/any:components/any:responses/definition:*/any:content/any:*/any:schema", func(node interface{}, parts []string, ctx *scope.Scope) error {
		if len(parts) != 2 {
			return nil
		}
		ctx.PushGlue(parts[0])
		ctx.PushGlue("response")
		err := NameSchema(node, ctx, schemaOpts)
		ctx.Reduce(2)
		return err
	})
	if err != nil {
		return err
	}

	err = traverse.EachNode(root, s, "/any:components/any:requestBodies/definition:*/any:content/any:*/any:schema", func(node interface{}, parts []string, ctx *scope.Scope) error {
		if len(parts) != 2 {
			return nil
		}
		ctx.PushGlue(parts[0])
		ctx.PushGlue("request")
		err := NameSchema(node, ctx, schemaOpts)
		ctx.Reduce(2)
		return err
	})
	if err != nil {
		return err
	}

	return nameOperationIDs(root, s, opts)
}

func nameOperationIDs(root interface{}, s *scope.Scope, opts OpenapiNamerOptions) error {
	return traverse.EachNode(root, s, "/path:paths/any:*/any:*", func(node interface{}, parts []string, ctx *scope.Scope) error {
		if len(parts) != 2 {
			return nil
		}
		endpoint, method := parts[0], parts[1]
		details, ok := schemadoc.ToOrderedMap(node)
		if !ok {
			return nil
		}

		ep, err := NewEndpoint(method, endpoint)
		if err != nil {
			opts.Log.WithError(err).Warnf("/paths/%s/%s: cannot parse endpoint", endpoint, method)
			return nil
		}
		operationID := ep.OperationID(opts.ResourceMethodVersion)

		if _, exists := details.Get("operationId"); !exists || opts.Overwrite {
			opts.Log.Infof("%s/operationId -> %s", ctx.Path(), operationID)
			details.Set("operationId", operationID)
		}
		return nil
	})
}

/*
Package resourceid parses the resource identifiers used as step keys in a
planner change order.

The canonical Kubernetes form is `apiVersion:kind:namespace:name`, for
example `apps/v1:Deployment:guestbook:redis-leader`. Cluster-scoped
resources drop the namespace segment (`v1:Namespace:guestbook`), in which
case a Namespace resource is named after the namespace it declares.

Parsing never rejects an identifier that a planner produced: Parse reports
whether the identifier had a recognised shape, and the returned ID always
carries a usable display name.
*/
package resourceid

package policy

// Compiled-in permission defaults. Overrides stored in the database win over
// these values; a triple absent from both is denied.
//
// SUPER_ADMIN is intentionally missing: the gate short-circuits it before the
// table is consulted.
var defaults = map[Role]map[string]bool{
	RoleAdmin: {
		Key(ResourceBrand, ActionView):        true,
		Key(ResourceBrand, ActionCreate):      true,
		Key(ResourceBrand, ActionEdit):        true,
		Key(ResourceBrand, ActionDelete):      true,
		Key(ResourceCampaign, ActionView):     true,
		Key(ResourceCampaign, ActionCreate):   true,
		Key(ResourceCampaign, ActionEdit):     true,
		Key(ResourceInfluencer, ActionView):   true,
		Key(ResourceInfluencer, ActionCreate): true,
		Key(ResourceInfluencer, ActionEdit):   true,
		Key(ResourceAssignment, ActionView):   true,
		Key(ResourceAssignment, ActionCreate): true,
		Key(ResourceAssignment, ActionEdit):   true,
		Key(ResourceContent, ActionView):      true,
		Key(ResourceContent, ActionCreate):    true,
		Key(ResourceContent, ActionReview):    true,
		Key(ResourcePayment, ActionView):      true,
		Key(ResourcePayment, ActionCreate):    true,
		Key(ResourcePayment, ActionEdit):      true,
		Key(ResourceAdminUser, ActionView):    true,
		Key(ResourceAdminUser, ActionCreate):  true,
		Key(ResourceAdminUser, ActionDelete):  true,
		Key(ResourcePermission, ActionView):   true,
		Key(ResourceAudit, ActionView):        true,
	},
	RoleManager: {
		Key(ResourceBrand, ActionView):      true,
		Key(ResourceBrand, ActionEdit):      true,
		Key(ResourceCampaign, ActionView):   true,
		Key(ResourceCampaign, ActionEdit):   true,
		Key(ResourceInfluencer, ActionView): true,
		Key(ResourceAssignment, ActionView): true,
		Key(ResourceAssignment, ActionEdit): true,
		Key(ResourceContent, ActionView):    true,
		Key(ResourceContent, ActionReview):  true,
		Key(ResourcePayment, ActionView):    true,
	},
	RoleStaff: {
		Key(ResourceBrand, ActionView):      true,
		Key(ResourceCampaign, ActionView):   true,
		Key(ResourceInfluencer, ActionView): true,
		Key(ResourceAssignment, ActionView): true,
		Key(ResourceContent, ActionView):    true,
	},
}

// DefaultAllowed resolves the compiled-in table. The second return reports
// whether the triple is present at all.
func DefaultAllowed(role Role, resource Resource, action Action) (bool, bool) {
	perms, ok := defaults[role]
	if !ok {
		return false, false
	}
	allowed, ok := perms[Key(resource, action)]
	return allowed, ok
}

// DefaultRules flattens the compiled-in table for the permission matrix view.
func DefaultRules() []Rule {
	var rules []Rule
	for role, perms := range defaults {
		for key, allowed := range perms {
			resource, action := splitKey(key)
			rules = append(rules, Rule{Role: role, Resource: resource, Action: action, Allowed: allowed})
		}
	}
	return rules
}

func splitKey(key string) (Resource, Action) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return Resource(key[:i]), Action(key[i+1:])
		}
	}
	return Resource(key), ""
}

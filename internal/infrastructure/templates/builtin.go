package templates

import "github.com/catalystqa/e2eagent/internal/domain"

type builtinTemplate struct {
	workflowType domain.WorkflowType
	content      string
}

// builtinTemplates is the seed set written to the templates directory on
// first run. Operators are expected to replace these with templates for
// their own clusters.
var builtinTemplates = map[string]builtinTemplate{
	domain.WorkflowLoginFlow: {
		workflowType: domain.WorkflowCreation,
		content: `# Login Flow Workflow

## Workflow Metadata
workflow_type: creation
dependencies: []
can_run_standalone: true
requires_existing_fabric: false
estimated_duration: 30
parameters:
  required: [username, password, cluster_url]
  optional: [timeout]

## Test Cases (Write Tests First)

test_valid_login
Given: User with a valid username {{username}} and password {{password}}
When: The user navigates to {{cluster_url}} login page
When: The user enters credentials and clicks login button
Then: The system should land into the home page on successful login
Then: The system should check the title element be present in the home page

test_invalid_login
Given: User with an invalid username and password
When: The user clicks on the login button
Then: The system should see an error "Sign in failed" on unsuccessful login
`,
	},
	domain.WorkflowNetworkHierarchy: {
		workflowType: domain.WorkflowCreation,
		content: `# Network Hierarchy Creation Workflow

## Workflow Metadata
workflow_type: creation
dependencies: [login_flow]
can_run_standalone: false
requires_existing_fabric: false
estimated_duration: 90
parameters:
  required: [area_name, building_name]
  optional: [timeout]

## Test Cases (Write Tests First)

test_create_area
Given: A logged-in user on the network design page
When: The user creates an area named {{area_name}} under Global
Then: The area {{area_name}} should appear in the hierarchy tree

test_create_building
Given: An existing area named {{area_name}}
When: The user creates a building named {{building_name}} under the area
Then: The building {{building_name}} should appear under {{area_name}}
`,
	},
	domain.WorkflowInventory: {
		workflowType: domain.WorkflowCreation,
		content: `# Inventory Workflow

## Workflow Metadata
workflow_type: creation
dependencies: [login_flow, network_hierarchy_creation]
can_run_standalone: false
requires_existing_fabric: false
estimated_duration: 120
parameters:
  required: [file_name]
  optional: [device_count, timeout]

## Test Cases (Write Tests First)

test_import_devices
Given: A logged-in user on the inventory page
When: The user imports devices from {{file_name}}
Then: The import should report {{device_count}} devices added

test_assign_devices_to_site
Given: Imported devices in the inventory
When: The user assigns the devices to building {{building_name}}
Then: Each device should show the assigned site in the inventory table
`,
	},
	domain.WorkflowFabricCreation: {
		workflowType: domain.WorkflowCreation,
		content: `# Fabric Creation Workflow

## Workflow Metadata
workflow_type: creation
dependencies: [login_flow, network_hierarchy_creation, inventory_workflow]
can_run_standalone: false
requires_existing_fabric: false
estimated_duration: 180
parameters:
  required: [fabric_name, bgp_asn]
  optional: [timeout]

## Test Cases (Write Tests First)

test_create_fabric_site
Given: A logged-in user with devices assigned to {{building_name}}
When: The user creates a fabric named {{fabric_name}} with BGP ASN {{bgp_asn}}
Then: The fabric {{fabric_name}} should appear in the fabric sites list

test_assign_device_roles
Given: A fabric named {{fabric_name}}
When: The user assigns border, control plane and edge roles to devices
Then: The fabric topology should show each device with its role
`,
	},
	domain.WorkflowL3VNManagement: {
		workflowType: domain.WorkflowCreation,
		content: `# L3VN Management Workflow

## Workflow Metadata
workflow_type: creation
dependencies: [login_flow, fabric_creation]
can_run_standalone: false
requires_existing_fabric: true
estimated_duration: 120
parameters:
  required: [fabric_name]
  optional: [l3vn_count, timeout]

## Test Cases (Write Tests First)

test_create_l3_virtual_networks
Given: An operational fabric named {{fabric_name}}
When: The user creates {{l3vn_count}} L3 virtual networks
Then: Each virtual network should appear in the fabric's VN list

test_attach_ip_pool
Given: An L3 virtual network in fabric {{fabric_name}}
When: The user attaches an anycast gateway IP pool to the network
Then: The pool should show as attached in the virtual network details
`,
	},
	domain.WorkflowFabricSettings: {
		workflowType: domain.WorkflowQuery,
		content: `# Fabric Settings Workflow

## Workflow Metadata
workflow_type: query
dependencies: [login_flow]
can_run_standalone: true
requires_existing_fabric: true
estimated_duration: 45
parameters:
  required: [fabric_name]
  optional: [timeout]

## Test Cases (Write Tests First)

test_view_fabric_settings
Given: A logged-in user and an existing fabric named {{fabric_name}}
When: The user opens the settings page of {{fabric_name}}
Then: The authentication template and site settings should be visible

test_verify_fabric_details
Given: The settings page of fabric {{fabric_name}}
When: The user inspects the fabric details panel
Then: The fabric status and BGP ASN should match the configured values
`,
	},
}

// Package generated holds the ABIs of the anchoring contracts the platform
// deploys on account-based chains.
package generated

// ShipmentRegistryABI is the ABI of the ShipmentRegistry contract.
const ShipmentRegistryABI = `[
  {
    "type": "function",
    "name": "registerShipment",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "shipmentId", "type": "string"},
      {"name": "trackingNumber", "type": "string"},
      {"name": "dataHash", "type": "string"},
      {"name": "metadata", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getShipment",
    "stateMutability": "view",
    "inputs": [{"name": "shipmentId", "type": "string"}],
    "outputs": [
      {"name": "trackingNumber", "type": "string"},
      {"name": "dataHash", "type": "string"},
      {"name": "timestamp", "type": "uint256"},
      {"name": "metadata", "type": "string"}
    ]
  },
  {
    "type": "event",
    "name": "ShipmentRegistered",
    "anonymous": false,
    "inputs": [
      {"name": "shipmentId", "type": "string", "indexed": false},
      {"name": "trackingNumber", "type": "string", "indexed": false}
    ]
  }
]`

// EventLogABI is the ABI of the EventLog contract.
const EventLogABI = `[
  {
    "type": "function",
    "name": "logEvent",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "shipmentId", "type": "string"},
      {"name": "eventId", "type": "string"},
      {"name": "eventType", "type": "string"},
      {"name": "dataHash", "type": "string"},
      {"name": "metadata", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getEvent",
    "stateMutability": "view",
    "inputs": [{"name": "eventId", "type": "string"}],
    "outputs": [
      {"name": "shipmentId", "type": "string"},
      {"name": "eventType", "type": "string"},
      {"name": "dataHash", "type": "string"},
      {"name": "timestamp", "type": "uint256"},
      {"name": "metadata", "type": "string"}
    ]
  },
  {
    "type": "function",
    "name": "logDocument",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "documentId", "type": "string"},
      {"name": "documentHash", "type": "string"},
      {"name": "metadata", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getDocument",
    "stateMutability": "view",
    "inputs": [{"name": "documentHash", "type": "string"}],
    "outputs": [
      {"name": "timestamp", "type": "uint256"},
      {"name": "metadata", "type": "string"}
    ]
  },
  {
    "type": "event",
    "name": "EventLogged",
    "anonymous": false,
    "inputs": [
      {"name": "eventId", "type": "string", "indexed": false},
      {"name": "shipmentId", "type": "string", "indexed": false},
      {"name": "eventType", "type": "string", "indexed": false},
      {"name": "dataHash", "type": "string", "indexed": false}
    ]
  },
  {
    "type": "event",
    "name": "DocumentLogged",
    "anonymous": false,
    "inputs": [
      {"name": "documentId", "type": "string", "indexed": false},
      {"name": "documentHash", "type": "string", "indexed": false}
    ]
  }
]`

package vulkan

/**
 * @brief Max number of device contexts that can record at the same time.
 * Each buffer keeps one dynamic offset per context.
 */
const VULKAN_MAX_DEVICE_CONTEXTS uint32 = 8

/** @brief Max number of descriptor sets a pipeline layout can use. */
const VULKAN_MAX_DESCRIPTOR_SETS uint32 = 8
